// Package method defines the retrieval method tag.
package method

// Method identifies which retrieval path produced a result.
type Method string

// Retrieval method constants.
const (
	Dense  Method = "dense"
	Sparse Method = "sparse"
	// Hybrid marks a result fused from both dense and sparse hits.
	Hybrid  Method = "hybrid"
	Unknown Method = "unknown"
)

// IsValid checks if the method is one of the supported values.
func (m Method) IsValid() bool {
	return m == Dense || m == Sparse || m == Hybrid || m == Unknown
}
