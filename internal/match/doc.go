// Package match ranks known names by their similarity to an unknown one.
//
// It backs the "did you mean" hints attached to unknown macro names and
// unknown macro arguments. Similarity is the normalized Levenshtein score of
// the names after case folding and separator stripping, so "dbType" and
// "db_type" are identical.
package match
