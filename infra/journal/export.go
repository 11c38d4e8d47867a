package journal

import "tradelog/service"

// Export writes every event in r after seq to w and returns how many were
// written. The reader's snapshot is taken once, so concurrent appends that
// land during the export are left for the next call.
func Export(w *Writer, r service.Reader, after uint64) (int, error) {
	n := 0
	for ev := range r.ReplayAfter(after, nil) {
		if err := w.Append(ev); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
