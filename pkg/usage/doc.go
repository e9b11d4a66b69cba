// Package usage counts feature consumption per tenant and calendar period.
//
// A Counter derives the period key (YYYY-MM or YYYY-MM-DD, UTC) from the
// clock and delegates to a Store whose Increment is atomic per key:
//
//   - MemoryStore: mutex-guarded map, for tests and single-node use
//   - RedisStore: INCRBY with an optional first-write expiry
//   - PostgresStore: single-statement upsert into usage_records
//   - MongoStore: FindOneAndUpdate with $inc and upsert
//
// A new period starts at zero; records of earlier periods are left untouched.
//
// The counter does not enforce quotas. Checking and incrementing are two
// steps, so under concurrency usage may overshoot a limit by the number of
// requests in flight when it is crossed. The limit is soft.
package usage
