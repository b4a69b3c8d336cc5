// Package jsonbind provides type-directed JSON data binding for Go.
//
// Values are encoded and decoded against their Go type: the type decides
// which JSON shapes are accepted, how numbers are narrowed and which
// container implementation an interface-typed field receives. Handlers are
// resolved once per type and cached for the life of the process.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	jsonbind/            Root package with one-call Encode and Decode helpers
//	├── codec/           Handler registry, encode and decode sessions
//	├── collections/     Container implementations used for interface substitution
//	├── stream/          Character streams with compression, charsets and digests
//	├── errors/          Structured error types with breadcrumb paths
//	└── cmd/jsonbind/    Command-line formatter, digester and inspector
//
// # Quick Start
//
// Encode and decode with the shared default codec:
//
//	type Server struct {
//	    Name string
//	    Port int
//	}
//
//	text, err := jsonbind.Encode(Server{Name: "api", Port: 8080})
//	// {"Name":"api","Port":8080}
//
//	srv, err := jsonbind.Decode[Server](text)
//
// Use a configured codec for sessions over files and streams:
//
//	c := codec.New().WithIndent("  ")
//	err := c.Enc().ToFile("server.json").Put(srv)
//
//	d := c.Dec().Strict().FromFile("server.json")
//	srv, err := codec.Get[Server](d)
//
// # Type Resolution
//
// Registered enums, records and parsers win over structural rules. After
// them come the numeric family, types with a text form, container
// capabilities and finally plain structs. See the codec package for the
// full order.
//
// # Errors
//
// Every failure is an *errors.Error carrying a phase, a kind and the path
// to the offending value:
//
//	_, err := jsonbind.Decode[Config](`{"Items":{"k":{"Values":[1,2,"x"]}}}`)
//	// decode type_mismatch at Items.k.Values[2]: ...
//
// # Thread Safety
//
// A configured Codec is safe for concurrent use. Encoder and Decoder
// sessions are not, and belong to a single goroutine.
package jsonbind
