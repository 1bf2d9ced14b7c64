package archivum

import (
	"encoding/json"
	"strconv"

	"github.com/duskforge/archivum/internal/bitset"
)

// serializedWorld is the on-disk shape described in spec.md §6. Field
// names are fixed by that contract, not by Go convention.
type serializedWorld struct {
	NextID     uint64                                 `json:"nextId"`
	Entities   []uint64                                `json:"entities"`
	Components map[string]map[string]map[string]any    `json:"components"`
}

// Serialize encodes w's entities and their non-tag component data as
// JSON, matching the persisted SerializedWorld format.
func Serialize(w *World) ([]byte, error) {
	sw := serializedWorld{
		NextID:     uint64(w.directory.nextID),
		Components: make(map[string]map[string]map[string]any),
	}
	ids := w.directory.knownIDs()
	sw.Entities = make([]uint64, len(ids))
	for i, id := range ids {
		sw.Entities[i] = uint64(id)
	}

	for _, def := range w.Registry.Defs() {
		if def.IsTag() {
			continue
		}
		rows := make(map[string]map[string]any)
		for _, id := range ids {
			data, ok := w.GetComponent(id, def)
			if !ok {
				continue
			}
			rows[strconv.FormatUint(uint64(id), 10)] = data
		}
		if len(rows) > 0 {
			sw.Components[def.Name()] = rows
		}
	}

	return json.Marshal(sw)
}

// Deserialize clears all of w's prior entities, archetypes, and caches,
// then loads data. Component observer registrations survive — they are
// host wiring, not world state. An unknown component name in data is
// ignored for that component's row data; the entities it was attached to
// are still created.
func Deserialize(w *World, data []byte) error {
	var sw serializedWorld
	if err := json.Unmarshal(data, &sw); err != nil {
		return err
	}

	w.index = newArchetypeIndex()
	w.directory = newEntityDirectory()
	w.hooks.resetState()
	w.deferral = newDeferralQueue()
	w.rng = make(map[rngKey]*lcgState)
	w.created = make(map[EntityID]struct{})
	w.destroyed = make(map[EntityID]struct{})
	w.createdSeq = nil
	w.destroySeq = nil

	perEntity := make(map[EntityID]map[ComponentID]map[string]any)
	for compName, rows := range sw.Components {
		def := w.Registry.ByName(compName)
		if def == nil {
			continue
		}
		for idStr, fields := range rows {
			raw, err := strconv.ParseUint(idStr, 10, 64)
			if err != nil {
				continue
			}
			id := EntityID(raw)
			comps, ok := perEntity[id]
			if !ok {
				comps = make(map[ComponentID]map[string]any)
				perEntity[id] = comps
			}
			comps[def.ID()] = fields
		}
	}

	for _, raw := range sw.Entities {
		id := EntityID(raw)
		w.directory.restore(id)

		comps, ok := perEntity[id]
		if !ok || len(comps) == 0 {
			continue
		}
		defs := make([]*ComponentDef, 0, len(comps))
		mask := bitset.New()
		for compID := range comps {
			def := w.Registry.ByID(compID)
			defs = append(defs, def)
			mask.Mark(uint32(compID))
		}
		target := w.index.getOrCreate(mask, defs)
		row := target.addRow(id, comps)
		w.directory.place(id, target, row)
	}

	w.directory.nextID = EntityID(sw.NextID)
	return nil
}
