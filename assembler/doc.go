/*
Package assembler turns assembly text into machine code.

Process of assembly

	Assembly Text ->
		parse ->
	Instruction Nodes (ast.Program) ->
		encode (arm64) ->
	Encoded Words ->
		serialize (obj) ->
	Binary Object

Every instruction encodes to a fixed width: 4 bytes, or 8 bytes for .8byte.
Instruction k always starts at the sum of the widths before it.
*/
package assembler
