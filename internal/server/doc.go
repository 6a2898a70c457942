// Package server provides HTTP routing, middleware, and the library API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally. Routes are method-qualified
// patterns, so a request with the wrong method gets a 405 from the mux.
//
// # Middleware
//
//   - [RequestIDMiddleware] assigns an X-Request-ID
//   - [LoggingMiddleware] logs every request with its status and duration
//   - [RecoverMiddleware] converts handler panics into JSON 500 responses
//   - [RateLimitMiddleware] applies a token bucket and answers 429 when it is empty
//
// # Library API
//
// [API] implements the [Handler] interface. It lists and removes folder history, selects the
// active folder, browses directories, lists videos with their saved progress, streams video
// files with Range support, and stores playback progress and notes.
//
// Errors are JSON objects of the form {"error": "..."}.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
