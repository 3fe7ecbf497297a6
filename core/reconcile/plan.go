package reconcile

import "geo-manager/core/normalize"

// Plan turns resolutions into concrete upsert operations.
//
// Matched and Unmatched resolutions each produce one op keyed by the
// identity pair (name, parent). Ambiguous resolutions produce no op; they
// are only counted on the report. Enrichment values that are empty are
// dropped from Set entirely so a merge can never blank out a curated field.
func Plan(resolutions []Resolution, rep *Report) []UpsertOp {
	ops := make([]UpsertOp, 0, len(resolutions))

	for _, res := range resolutions {
		if res.Outcome == Ambiguous {
			rep.Ambiguous++
			continue
		}

		op := UpsertOp{
			Name:          res.Record.Name,
			NameKey:       normalize.Key(res.Record.Name),
			CandidateCode: res.Record.CandidateCode,
			SetOnInsert:   res.Record.Identity,
			Set:           pruneEmpty(res.Record.Enrichment),
			Existing:      res.Entity,
		}
		ops = append(ops, op)
	}

	return ops
}

// BuildOps runs the in-memory half of the pipeline over one parent scope:
// validation, dedup, resolution, planning. Records failing validation are
// counted as skipped and dropped; nothing here touches the store.
func BuildOps(records []SourceRecord, existing []Entity, rep *Report) []UpsertOp {
	valid := make([]SourceRecord, 0, len(records))
	for _, rec := range records {
		if err := Validate(rec); err != nil {
			rep.Skipped++
			continue
		}
		valid = append(valid, rec)
	}

	deduped := Dedupe(valid)

	resolutions := make([]Resolution, 0, len(deduped))
	for _, rec := range deduped {
		resolutions = append(resolutions, Resolve(rec, existing))
	}

	return Plan(resolutions, rep)
}

// pruneEmpty drops nil and empty-string values from an enrichment map.
func pruneEmpty(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
