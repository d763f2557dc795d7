// Package parser turns script source text into an AST.
//
// The lexer is a single-cursor scanner with one character of lookahead; the
// parser is recursive descent with one token of lookahead and no
// backtracking. The supported grammar is a small statement/expression
// subset: function declarations, return statements, expression statements,
// binary expressions, chainable call expressions, identifiers, decimal
// number literals and quoted string literals.
//
// All binary operators share one precedence level and associate left to
// right. There is no precedence climbing; `1 + 2 * 3` parses as
// `(1 + 2) * 3`.
//
// Parsing is fail-fast: the first unrecoverable token aborts with a syntax
// error carrying the source position. There is no error recovery and no
// multi-error reporting.
//
// The returned AST is owned exclusively by its Program root; nodes are
// never shared between trees and contain no cycles.
package parser
