// Package hclscene loads scene trees from HCL files and applies them to a
// [glscene.Driver].
//
// Every block is an element. The block type is the tag, an optional single
// label is the element key, attributes are props in source order and nested
// blocks are children:
//
//	reset {
//	  color = [0, 0, 0, 1]
//	}
//
//	shader "triangle" {
//	  vert  = file_vert
//	  frag  = file_frag
//	  count = 3
//	  defines = { USE_TINT = true }
//
//	  vertex_array {
//	    buffer    { data = [0, 0, 1, 0, 0, 1] }
//	    attribute { name = "a_position", size = 2 }
//	  }
//	}
//
// Object values are flattened into dash-separated keys ("defines-USE_TINT")
// so that later edits diff one field at a time. The hidden attribute is not
// a prop; it hides the element's node.
//
// [Mount] builds a fresh tree. [Sync] reconciles a mounted tree with a new
// element list, reusing nodes whose tag and key (or, for unkeyed elements,
// tag and position) match.
package hclscene
