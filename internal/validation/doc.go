// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package validation wraps go-playground/validator v10 with a shared validator
instance and readable error messages.

# Custom Rules

  - role: value must be a known account role (owner, admin or user)

# Error Messages

Each failed field is translated into a short sentence such as
"Limit must be at least 1". The combined message joins them with "; ".
Callers that need the structured form use (*Errors).Fields.

# Thread Safety

GetValidator initializes the validator once; the returned instance is safe for
concurrent use.
*/
package validation
