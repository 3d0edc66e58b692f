// Package model defines the shared domain types.
package model
