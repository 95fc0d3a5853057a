package routing

// Cost is the strongly-typed edge/path weight used throughout the
// routing core (Graph/Dijkstra, NeighborTable, DVEngine). Topology
// files and LSP/DV payloads carry plain float64s, the way the
// teacher's topology package keeps Cost separate from the wire-level
// float64 fields.
type Cost float64

// DefaultCost is applied by NeighborTable.Add when a neighbor is
// added with a zero or negative cost. LSP edge weights are used as
// received.
const DefaultCost Cost = 1.0
