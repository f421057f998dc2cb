// Package journal keeps a record of every transaction tronkit signs and
// broadcasts, so a sender can find out later what happened to it.
//
// The journal never stores key material. It runs on sqlite (schema from the
// gorm models) or postgres (schema from the embedded goose migrations).
package journal
