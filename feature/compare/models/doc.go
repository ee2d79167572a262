// Package models defines the GORM models the database sink writes comparison
// results into: one row per diff record and one summary row per run.
package models
