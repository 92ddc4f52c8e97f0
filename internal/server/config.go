package server

import (
	"encoding/json"
	"strings"

	"github.com/alfredjeanlab/forge/internal/model"
)

// builtinConfigs provides default config values that are returned when no
// user-defined config exists for a key. The namespace index groups them by
// prefix so ListConfigs can merge them in.
var builtinConfigs = map[string]*model.Config{
	"scan:skip_dirs": {
		Key:   "scan:skip_dirs",
		Value: json.RawMessage(`["node_modules",".git","vendor","__pycache__",".venv","dist","build"]`),
	},
	"scan:todo_markers": {
		Key:   "scan:todo_markers",
		Value: json.RawMessage(`["TODO","FIXME","HACK","XXX"]`),
	},
	"view:inbox": {
		Key:   "view:inbox",
		Value: json.RawMessage(`{"filter":{"status":["proposed"]},"sort":"priority","limit":10}`),
	},
}

var builtinConfigsByNamespace = func() map[string][]*model.Config {
	m := map[string][]*model.Config{}
	for key, cfg := range builtinConfigs {
		if i := strings.Index(key, ":"); i > 0 {
			ns := key[:i]
			m[ns] = append(m[ns], cfg)
		}
	}
	return m
}()
