package model

import (
	"slices"

	pkgerrors "github.com/erazemk/phonestock/internal/errors"
)

// Kind names an entity whose status is governed by a state machine.
type Kind string

const (
	KindPhone     Kind = "phone"
	KindAccessory Kind = "accessory"
	KindEmployee  Kind = "employee"
)

// transitions lists, per kind, the statuses reachable from each status.
// A status missing from the inner map is unknown for that kind.
var transitions = map[Kind]map[string][]string{
	KindPhone: {
		PhoneStatusAvailable:   {PhoneStatusUnavailable, PhoneStatusSold},
		PhoneStatusSold:        {PhoneStatusUnavailable},
		PhoneStatusUnavailable: {},
	},
	KindAccessory: {
		AccessoryStatusAvailable:   {AccessoryStatusUnavailable, AccessoryStatusLowStock, AccessoryStatusOutOfStock},
		AccessoryStatusLowStock:    {AccessoryStatusUnavailable, AccessoryStatusAvailable, AccessoryStatusOutOfStock},
		AccessoryStatusOutOfStock:  {AccessoryStatusUnavailable, AccessoryStatusAvailable, AccessoryStatusLowStock},
		AccessoryStatusUnavailable: {},
	},
	KindEmployee: {
		UserStatusActive:   {UserStatusInactive},
		UserStatusInactive: {UserStatusActive},
	},
}

// softDeleted is the status a kind can enter from any current status,
// including legacy values outside the table and a missing status.
var softDeleted = map[Kind]string{
	KindPhone:     PhoneStatusUnavailable,
	KindAccessory: AccessoryStatusUnavailable,
}

// KnownStatus reports whether status is part of the kind's state machine.
func KnownStatus(kind Kind, status string) bool {
	_, ok := transitions[kind][status]
	return ok
}

// CanTransition reports whether from -> to is an allowed move. Staying in
// place is always allowed for a known status.
func CanTransition(kind Kind, from, to string) bool {
	if sink, ok := softDeleted[kind]; ok && to == sink {
		return true
	}
	next, ok := transitions[kind][from]
	if !ok || !KnownStatus(kind, to) {
		return false
	}
	return from == to || slices.Contains(next, to)
}

// Transition validates from -> to and reports whether a write is needed.
func Transition(kind Kind, from, to string) (changed bool, err error) {
	if !KnownStatus(kind, to) {
		return false, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid %s status %q", kind, to)
	}
	if !CanTransition(kind, from, to) {
		return false, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot change %s status from %q to %q", kind, from, to)
	}
	return from != to, nil
}
