//go:build !symgraphdebug

package bsgraph

const checkInvariants = false
