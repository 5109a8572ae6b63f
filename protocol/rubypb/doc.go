// Package rubypb holds the generated protobuf messages of the ruby wire
// format.
package rubypb

//go:generate protoc --go_out=. --go_opt=paths=source_relative ruby.proto
