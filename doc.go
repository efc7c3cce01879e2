// Package surreal is a SurrealDB client speaking the RPC protocol over
// WebSocket, with CBOR (default) or JSON framing.
//
// Connect dials the server, after which every RPC method is available on
// the returned Client:
//
//	db, err := surreal.Connect(ctx, "ws://localhost:8000")
//	if err != nil {
//		...
//	}
//	defer db.Close(ctx)
//
//	if err := db.Use(ctx, "app", "app"); err != nil {
//		...
//	}
//
//	res, err := db.Select(ctx, "person")
//
// Results come back as models.AnyValue, a type-erased container that
// preserves the database's type identity across the wire. Use models.As
// to extract a concrete type, or the generic Send to decode straight
// into your own structs:
//
//	people, err := surreal.Send[[]Person](ctx, db, "select", "person")
//
// The client tracks its session (namespace, database, authentication
// token and LET bindings) and replays it on Reconnect, so a re-dialed
// connection behaves like the one that dropped.
package surreal
