// Package publish implements the chunked publish protocol. A client opens a
// session with Initiate and receives a token, streams file pieces with any
// number of AddPieces calls, and sets final on the last call. Finalization
// takes the session out of the store first, stores every piece in the
// content store concurrently, and commits the version to the catalog only
// after every piece has a reference. A failed finalization consumes the
// session: the attempt is terminal and the client must start over.
//
// Session state lives behind the Store interface with in-memory and Redis
// implementations. All per-token mutations are atomic, so concurrent piece
// calls never lose updates and at most one final call wins.
package publish
