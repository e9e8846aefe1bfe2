package worldstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Serialization helpers for converting between Go structs and Redis hashes
//
// Redis stores data as string-to-string maps (hashes). The nested Data tree
// is JSON-encoded into a single hash field. Flag bags are stored as separate
// "flag:{scope}" fields on the same entity hash, so entity serialization must
// skip them on read.

// EntityToHash converts an Entity struct to a Redis hash format.
// The Data tree is JSON-encoded.
func EntityToHash(e *Entity) (map[string]interface{}, error) {
	dataJSON, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity data: %w", err)
	}

	hash := map[string]interface{}{
		"id":            e.ID,
		"type":          e.Type,
		"name":          e.Name,
		"data":          string(dataJSON),
		"created_at_ms": e.CreatedAtMs,
	}

	return hash, nil
}

// HashToEntity converts a Redis hash to an Entity struct.
// Flag bag fields ("flag:{scope}") are ignored; they are read through the
// flag accessors, not as part of the entity.
func HashToEntity(hash map[string]string) (*Entity, error) {
	var data map[string]any
	if dataJSON := hash["data"]; dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entity data: %w", err)
		}
	}
	if data == nil {
		data = map[string]any{}
	}

	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)

	entity := &Entity{
		ID:          hash["id"],
		Type:        hash["type"],
		Name:        hash["name"],
		Data:        data,
		CreatedAtMs: createdAtMs,
	}

	return entity, nil
}

// FlagScopesFromHash returns the flag bag scopes present on an entity hash,
// extracted from its "flag:{scope}" fields.
func FlagScopesFromHash(hash map[string]string) []string {
	var scopes []string
	for field := range hash {
		if strings.HasPrefix(field, "flag:") {
			scopes = append(scopes, strings.TrimPrefix(field, "flag:"))
		}
	}
	return scopes
}

// MetaToHash converts a WorldMeta struct to a Redis hash format.
func MetaToHash(m *WorldMeta) map[string]interface{} {
	return map[string]interface{}{
		"world_id":       m.WorldID,
		"schema_version": m.SchemaVersion,
		"created_at_ms":  m.CreatedAtMs,
	}
}

// HashToMeta converts a Redis hash to a WorldMeta struct.
func HashToMeta(hash map[string]string) *WorldMeta {
	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)

	return &WorldMeta{
		WorldID:       hash["world_id"],
		SchemaVersion: hash["schema_version"],
		CreatedAtMs:   createdAtMs,
	}
}

// DeepMerge merges src into dst in place. Nested maps are merged recursively;
// any other value in src replaces the value in dst. dst must not be nil.
func DeepMerge(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			DeepMerge(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}

// deletePath removes a dotted-path key from a nested bag, pruning any maps
// left empty along the way. Reports whether something was removed.
func deletePath(bag map[string]any, dotted string) bool {
	parts := strings.Split(dotted, ".")
	return deletePathParts(bag, parts)
}

func deletePathParts(bag map[string]any, parts []string) bool {
	if len(parts) == 1 {
		if _, ok := bag[parts[0]]; !ok {
			return false
		}
		delete(bag, parts[0])
		return true
	}

	child, ok := bag[parts[0]].(map[string]any)
	if !ok {
		return false
	}
	removed := deletePathParts(child, parts[1:])
	if removed && len(child) == 0 {
		delete(bag, parts[0])
	}
	return removed
}
