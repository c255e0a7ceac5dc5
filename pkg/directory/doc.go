// Package directory indexes the mental-health services directory and serves
// semantic top-k retrieval over it.
//
// Records are stored in sqlite; embeddings live in a sqlite-vec virtual
// table with cosine distance. Retrieval embeds the query and returns the
// closest service records as field maps.
package directory
