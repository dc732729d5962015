// Package engine evaluates built constraints over batches of samples and
// records the answers.
//
// An Evaluator owns one constraint. Evaluate stamps the run and every
// evaluation with a logical clock value, classifies each answer by whether
// the root region gate let the query through, and writes the whole run to
// the store in one transaction.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Runs and evaluations are stamped with a monotonic seq from Clock.Next().
// NEVER use wall-clock timestamps for ordering. Run ids are UUIDv7 for
// readability only; ordering always comes from seq.
//
// Deterministic Evaluation:
// Samples are evaluated in the order given, on the calling goroutine. The
// same constraint and samples always produce the same evaluations, which is
// what Replay checks.
package engine
