// Package codedom exposes a codetree project as agent tools.
//
// These tools address code by label ("0.2.1") rather than by line number,
// working with structural nodes (directories, files, functions, classes,
// control-flow blocks) instead of raw text.
//
// Tools:
//   - expand: Windowed view of a subtree
//   - view_full_tree: Unbounded view of the whole project
//   - get_node: Kind, label and path of one node
//   - show_source: Regenerated source of one node
//   - find_nodes: Regex search over node descriptions
//   - insert_child: Append a construct, or create a file in a directory
//   - update_node: Replace a node with a parsed fragment
//   - delete_node: Remove a node (and its file, for file nodes)
//   - write_changes: Flush modified files to disk
package codedom
