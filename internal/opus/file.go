package opus

import "fmt"

// File is the decoded structure of one FTS container: its block directory
// and the full parameter header. Both are built once and read-only after.
type File struct {
	Dir    Directory
	Header Header
}

// Read scans the source and decodes all header blocks in one pass. The
// source is only used for the duration of the call.
func Read(src Source, diag DiagnosticFunc) (*File, error) {
	dir, err := Scan(src)
	if err != nil {
		return nil, err
	}
	hdr, err := ReadHeader(src, dir, diag)
	if err != nil {
		return nil, err
	}
	return &File{Dir: dir, Header: hdr}, nil
}

// ReadPath opens a disk-backed source for path and decodes it.
func ReadPath(path string, diag DiagnosticFunc) (*File, error) {
	return Read(NewFileSource(path), diag)
}

// ReadBytes decodes a measurement held in memory, e.g. bytes downloaded
// from the instrument.
func ReadBytes(data []byte, diag DiagnosticFunc) (*File, error) {
	return Read(NewMemSource(data), diag)
}

// Interferogram extracts the single-sided interferogram data block.
func (f *File) Interferogram(src Source) (*SampleArray, error) {
	return Extract(f.Dir, f.Header, src, BlockInterferogram)
}

// PeakIndex returns the interferogram's zero path difference sample index
// from the PKL instrument parameter.
func (f *File) PeakIndex() (int, error) {
	pkl, ok := f.Header.Get("Instrument Parameters", "PKL")
	if !ok {
		return 0, fmt.Errorf("%w: Instrument Parameters/PKL", ErrMissingParameter)
	}
	v, ok := pkl.Number()
	if !ok {
		return 0, fmt.Errorf("%w: Instrument Parameters/PKL is %s, not numeric", ErrMissingParameter, pkl.Kind)
	}
	return int(v), nil
}

// LaserWavenumber returns the reference laser wavenumber LWN.
func (f *File) LaserWavenumber() (float64, error) {
	return requireNumber(f.Header, "Instrument Parameters", "LWN")
}
