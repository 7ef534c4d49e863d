// Package property defines the property record handled by the router together with
// everything that can be decided about a record without talking to a shard.
//
// Key Components:
//
//   - Record / Fields: Record is the typed document stored on the shards. Fields is the
//     loosely typed mapping an inbound request carries before it has been validated.
//
//   - Identity: BuildIdentity derives the natural key (custom_id) of a property from its
//     state, city and address. The identity is the only token shared between shards,
//     so the derivation must stay stable across releases.
//
//   - Schema: a static description of the property fields (name, accepted kinds,
//     optional flag) consumed by one generic validator. Validation collects every
//     violation before returning, so a caller can present a complete list of problems.
//
//   - Criteria: the search predicate evaluated by every shard (exact custom_id match or
//     case-insensitive substring matches combined with AND / OR).
//
// Usage Example:
//
//	fields := property.Fields{"state": "New York", "city": "New York", "address": "123 Main St", ...}
//	if err := property.DefaultSchema.Validate(fields); err != nil {
//		var verr *property.ValidationError
//		if errors.As(err, &verr) {
//			for _, v := range verr.Violations {
//				fmt.Println(v)
//			}
//		}
//	}
//	rec, _ := property.RecordFromFields(fields)
//	rec.CustomID = property.BuildIdentity(rec.State, rec.City, rec.Address) // "NEW-NEWY-123"
package property
