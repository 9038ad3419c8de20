package model

// PlayerID uniquely identifies a player across the system.
// It is an opaque key: the engine never holds player objects, only IDs.
type PlayerID string
