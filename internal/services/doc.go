// Package services contains clients for the AutoChord HTTP service.
//
// [APIService] makes raw requests and is used by commands that want to inspect
// status codes and bodies directly. [AutoChordService] is the typed client the
// rest of the application consumes, via the [Service] interface.
//
// Operations that are authentication-gated take the bearer credential as an
// explicit parameter; callers obtain it from the session store at the start of
// a user action. An empty credential means unauthenticated.
package services
