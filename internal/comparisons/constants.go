package comparisons

// DefaultMaxK is the neighbor-window width used when none is configured.
// Wider windows mean fewer fallback draws at the cost of a larger search.
const DefaultMaxK = 100
