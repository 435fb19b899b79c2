// Package models defines the core domain models for the bill tracker.
//
// # Models
//
//   - Bill: a single payable obligation with amount, due date, recurrence,
//     and payment status. The only entity the tracker persists besides users.
//   - User: a registered account. Every bill belongs to exactly one user and
//     all queries are scoped to that user; there is no cross-user visibility.
//
// # Design Principles
//
// 1. **One entity, rich enums**: bills carry their recurrence, category, and
// payment-method metadata as typed string enums rather than lookup tables.
//
// 2. **Dates are civil dates**: DueDate and PaidDate are calendar days in UTC
// (midnight-normalized), never instants. Recurrence and reconciliation compare
// days, not timestamps.
//
// 3. **Invariants live with the model**: PaidDate is present if and only if
// Status is paid; MarkPaid/MarkUnpaid keep the two fields in lockstep.
//
// 4. **Avoid circular references**: relationships use ID strings, not pointers.
package models
