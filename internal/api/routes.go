// Package api exposes the adapter's HTTP surface: the Telegram webhook receiver
// and the start, stop and send endpoints used by the task service.
package api

// BasePath prefixes every adapter route.
const BasePath = "/api"

// Adapter route names. Each maps to POST BasePath + "/" + name.
const (
	RouteReceive = "receive"
	RouteStart   = "start"
	RouteStop    = "stop"
	RouteSend    = "send"
)

// All returns the adapter route names in a stable order.
func All() []string {
	return []string{RouteReceive, RouteStart, RouteStop, RouteSend}
}

// Path returns the URL path of a route.
func Path(route string) string {
	return BasePath + "/" + route
}
