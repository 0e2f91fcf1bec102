// Package service holds the user aggregate store.
//
// A user owns one contact row and one email row. The store creates, reads,
// updates and deletes the three rows as one unit and owns the transaction
// boundary for every multi-row write.
package service
