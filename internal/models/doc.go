// Package models defines the core domain entities for Divvy.
//
// # Entities
//
//   - Group: a shared-expense context with a member roster
//   - Member: a participant in a group, linked or placeholder
//   - Expense: a shared cost with its per-member split, immutable once recorded
//   - Settlement: a direct balancing payment between two members
//   - User: a registered account (the authenticated identity behind a Member)
//
// # Design Principles
//
//  1. **Typed at the boundary**: the store returns these structs, never
//     untyped maps. Validation and conversion happen in the storage layer.
//  2. **Avoid circular references**: relationships use ID strings, not
//     pointers.
//  3. **Append-only money facts**: expenses and settlements are never
//     updated in place; balances are always derived from the full history.
package models
