// Package api provides the HTTP handlers for the Flota match server.
//
// Two surfaces share one router and one GameService.
//
// JSON API:
//   - POST   /api/matches                      - Create match {rows, columns, ships, rules?, seed?}
//   - GET    /api/matches                      - List matches (sort=id|created|accessed, order, limit)
//   - GET    /api/matches/{id}                 - Match summary and statistics
//   - DELETE /api/matches/{id}                 - End a match
//   - POST   /api/matches/{id}/probe           - Probe a cell {row, column}
//   - GET    /api/matches/{id}/ships/{ship}    - Ship descriptor and its r#c#O#l record
//   - GET    /api/matches/{id}/solution        - Full fleet
//   - GET    /api/matches/{id}/board?reveal=   - Rendered board
//   - GET    /api/rules, /api/rules/{name}     - Placement rule presets
//
// Legacy text/XML resource, kept wire-compatible with existing clients:
//   - POST   /servicios/partidas/{filas}/{columnas}/{barcos}    - 201, Location header
//   - DELETE /servicios/partidas/{id}
//   - PUT    /servicios/partidas/{id}/casilla/{fila},{columna}  - text result code
//   - GET    /servicios/partidas/{id}/barco/{barco}             - text ship record
//   - GET    /servicios/partidas/{id}/solucion                  - XML fleet
//
// Result codes on the legacy surface: -1 water, -2 hit, -3 hit on an already
// sunk ship, and the ship id when the probe sinks it.
//
// Every response carries an X-Request-ID header. JSON errors are returned as:
//
//	{
//	  "error": "error message",
//	  "code": 404
//	}
//
// GET /ws?match={id} upgrades to a WebSocket that receives probe and
// match_deleted events for that match.
package api
