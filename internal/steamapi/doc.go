// Package steamapi talks to the public Steam Web API endpoints workshopdl
// needs: resolving a workshop collection to its ordered member items, looking
// up item titles, and a cheap reachability probe.
//
// Requests go through a resty client configured with the settings timeout and
// transport-level retries. Response shapes are checked strictly; a body that
// lacks the expected nesting is reported as a collection resolution failure
// rather than an empty list.
package steamapi
