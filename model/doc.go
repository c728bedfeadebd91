// Package model defines stable boundary types for API layers.
//
// Wire identity (canonical address bytes and record CIDs) is unaffected by
// any projection. These structs are the only types intended for direct
// JSON serialization by consumers.
package model
