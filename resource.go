package drift

import "fmt"

// A ResourceRequest is an immutable descriptor of the resources one unit of work
// or one worker requires. The zero value requests nothing.
type ResourceRequest struct {
	NumCPUs     float64
	NumGPUs     float64
	MemoryBytes int64
}

// Multiply scales every dimension of this ResourceRequest by n, producing the
// total resources required by n identical workers.
func (r ResourceRequest) Multiply(n int) ResourceRequest {
	return ResourceRequest{
		NumCPUs:     r.NumCPUs * float64(n),
		NumGPUs:     r.NumGPUs * float64(n),
		MemoryBytes: r.MemoryBytes * int64(n),
	}
}

// Validate returns an error if any dimension of this ResourceRequest is negative
func (r ResourceRequest) Validate() error {
	if r.NumCPUs < 0 {
		return fmt.Errorf("ResourceRequest NumCPUs %v cannot be negative", r.NumCPUs)
	}
	if r.NumGPUs < 0 {
		return fmt.Errorf("ResourceRequest NumGPUs %v cannot be negative", r.NumGPUs)
	}
	if r.MemoryBytes < 0 {
		return fmt.Errorf("ResourceRequest MemoryBytes %v cannot be negative", r.MemoryBytes)
	}
	return nil
}
