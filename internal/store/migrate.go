package store

// schemaVersion is the current on-disk layout version.
const schemaVersion = 1

// migrations upgrade a raw decoded document one version at a time. Each
// entry migrates from its index to index+1.
var migrations = []func(map[string]any) map[string]any{
	migrateFlatToNested, // 0 -> 1
}

func migrate(raw map[string]any) map[string]any {
	version := 0
	if v, ok := raw["schema_version"].(float64); ok {
		version = int(v)
	}
	for v := version; v < schemaVersion && v < len(migrations); v++ {
		raw = migrations[v](raw)
	}
	raw["schema_version"] = schemaVersion
	return raw
}

// migrateFlatToNested moves the legacy flat layout (auth tables and record
// collections all at the top level) into the current nested shape.
func migrateFlatToNested(raw map[string]any) map[string]any {
	if _, ok := raw["auth"]; ok {
		return raw
	}

	auth := make(map[string]any)
	for _, key := range []string{
		"users", "sessions", "throttles", "reset_tokens",
		"device_sessions", "events", "push_subscriptions",
	} {
		if v, ok := raw[key]; ok {
			auth[key] = v
			delete(raw, key)
		}
	}

	records := make(map[string]any)
	if legacy, ok := raw["records"].(map[string]any); ok {
		records = legacy
	} else {
		// Any remaining top-level array was a record collection in the
		// flat layout.
		for key, v := range raw {
			if key == "schema_version" || key == "updated_date" {
				continue
			}
			if _, isList := v.([]any); isList {
				records[key] = v
				delete(raw, key)
			}
		}
	}

	raw["auth"] = auth
	raw["records"] = records
	return raw
}
