// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package storage defines the storage contract every backend driver satisfies and
the Manager facade application code talks to.

# Contract

Driver is the mandatory surface: play records, favorites, legacy (V1) accounts
and search history. Everything else is an optional capability expressed as a
small interface (UserStoreV2, AdminConfigStore, SkipConfigStore, RawKV, ...).
A driver implements whichever capabilities its backend can serve.

# Capability Dispatch

NewManager inspects the driver once and keeps a typed reference to every
capability it finds. Each optional Manager method then either delegates to that
reference or, when the capability is absent, returns a safe default:

  - list/map results: empty
  - existence and lookup results: false / absent
  - writes and deletes: silent no-op

The only exception is ClearAllData, which returns ErrUnsupported.

# Keys

Per-title records are addressed by Key(source, id), which joins the two parts
with KeySeparator. The separator is not validated against the inputs; callers
own sanitization of source and id values.

# Usage

	driver, err := factory.Open(ctx, &cfg.Storage)
	if err != nil {
	    return err
	}
	mgr := storage.NewManager(driver)
	defer mgr.Close()

	err = mgr.SavePlayRecord(ctx, "alice", "src1", "42", &models.PlayRecord{PlayTime: 120})
	records, err := mgr.GetAllPlayRecords(ctx, "alice") // contains "src1+42"

# Thread Safety

Manager holds no mutable state after construction. Concurrent writers to the
same key race at the backend's native consistency level (last write wins).
*/
package storage
