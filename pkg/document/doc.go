// Package document implements the self-describing, tree-structured
// binary document that is the unit of storage for every vault.
//
// A Document is an ordered map from string keys to typed Node values.
// Nodes may themselves hold sub-documents or arrays (an array being a
// Document whose keys are decimal indexes, iterated in insertion
// order), giving the value model its tree shape. Documents serialize to
// a self-delimiting binary form (Encode/Decode) that round-trips with
// full fidelity, including child insertion order.
//
// Values are addressed by slash-delimited path ("a/b/0/c"); Set/Push
// auto-create intermediate sub-documents as they descend a path.
package document
