package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/postscript/internal/flagx"
	"github.com/dmitrijs2005/postscript/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "10s"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c/-config flags. Missing flag means no JSON is loaded. Read or
// unmarshal errors panic; the caller decides whether to recover.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
}
