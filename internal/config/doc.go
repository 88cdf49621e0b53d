// Package config provides configuration parsing for doclisten.
//
// The configuration is stored in doclisten.json. This package handles
// loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "address": ":8080",
//	    "readLimit": 65536,
//	    "writeTimeout": "10s"
//	  },
//	  "metrics": {
//	    "namespace": "doclisten"
//	  },
//	  "tracing": {
//	    "tracerName": "doclisten"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "listeners": [
//	    {"event": "keydown", "when": "both", "action": "log"},
//	    {"event": "resize", "when": "mounted", "action": "count"}
//	  ]
//	}
//
// # Listener Actions
//
// Callbacks cannot be written in JSON, so each declared listener names a
// built-in action:
//   - log: write the event to the structured log
//   - count: tally the event per type
//   - echo: send the event back to the WebSocket client (serve only)
package config
