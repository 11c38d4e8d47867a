package index

// postings holds the sequence numbers sharing one key. The store appends
// in sequence order, so the slice stays sorted without any work here.
type postings struct {
	seqs []uint64
}

func (p *postings) add(seq uint64) {
	if n := len(p.seqs); n > 0 && p.seqs[n-1] >= seq {
		panic("index: sequence numbers must be appended in ascending order")
	}
	p.seqs = append(p.seqs, seq)
}

func (p *postings) Len() int { return len(p.seqs) }

// copyTo appends the postings to dst.
func (p *postings) copyTo(dst []uint64) []uint64 {
	return append(dst, p.seqs...)
}
