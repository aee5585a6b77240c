// Package websocket pushes match events to WebSocket subscribers.
//
// A client subscribes to one match by connecting to /ws?match=<id>. The hub
// sends JSON messages of the form
//
//	{"match_id": 3, "event": "probe", "data": {...ProbeResult...}}
//	{"match_id": 3, "event": "match_deleted"}
//
// Clients do not send anything; incoming frames only keep the connection
// alive.
//
// Concurrency:
//
// The Hub's subscriber map is owned by the Run goroutine. Registration,
// removal, broadcasts and count queries all travel over channels, so
// BroadcastEvent is safe to call from HTTP handlers. Broadcasts are queued
// and dropped when the queue is full so a slow hub never stalls a probe.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.ServeWS(w, r, matchID)
//	hub.BroadcastEvent(matchID, websocket.EventProbe, result)
package websocket
