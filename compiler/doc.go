// Package compiler lowers a parsed AST to bytecode in a single depth-first
// pass. There are no optimization passes: no constant folding, no dead-code
// elimination, no peephole rewrites.
//
// The output is a Program: an ordered set of code regions, each a flat
// instruction byte stream plus a constant pool. Region 0 is the top-level
// script; every declared function body gets its own region so that calls
// transfer control between addressable instruction streams instead of
// sharing one array.
//
// Operands are single bytes. A constant pool past 256 entries, more than
// 255 call arguments or more than 256 regions is a compile-time overflow
// error rather than a silent truncation.
package compiler
