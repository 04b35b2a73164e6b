package domain

import "encoding/binary"

// ValueKind distinguishes the variants a BuildValue can take.
type ValueKind uint8

const (
	ValueKindInvalid           ValueKind = 0
	ValueKindVirtualInput      ValueKind = 1
	ValueKindExistingInput     ValueKind = 2
	ValueKindMissingInput      ValueKind = 3
	ValueKindFailedInput       ValueKind = 4
	ValueKindSuccessfulCommand ValueKind = 5
	ValueKindFailedCommand     ValueKind = 6
	ValueKindSkippedCommand    ValueKind = 7
	ValueKindTarget            ValueKind = 8
)

// BuildValue is a tagged variant describing the outcome of a unit of work.
// Invalid is the sentinel zero value and is never persisted.
type BuildValue struct {
	Kind      ValueKind
	FileInfo  FileInfo   // ExistingInput
	Signature uint64     // SuccessfulCommand
	Outputs   []FileInfo // SuccessfulCommand, one per output (zero FileInfo for virtual outputs)
}

func InvalidValue() BuildValue      { return BuildValue{Kind: ValueKindInvalid} }
func VirtualInputValue() BuildValue { return BuildValue{Kind: ValueKindVirtualInput} }
func ExistingInputValue(fi FileInfo) BuildValue {
	return BuildValue{Kind: ValueKindExistingInput, FileInfo: fi}
}
func MissingInputValue() BuildValue { return BuildValue{Kind: ValueKindMissingInput} }
func FailedInputValue() BuildValue  { return BuildValue{Kind: ValueKindFailedInput} }
func SuccessfulCommandValue(signature uint64, outputs []FileInfo) BuildValue {
	return BuildValue{Kind: ValueKindSuccessfulCommand, Signature: signature, Outputs: outputs}
}
func FailedCommandValue() BuildValue  { return BuildValue{Kind: ValueKindFailedCommand} }
func SkippedCommandValue() BuildValue { return BuildValue{Kind: ValueKindSkippedCommand} }
func TargetValue() BuildValue         { return BuildValue{Kind: ValueKindTarget} }

// IsScalar reports whether the value is one of the shapes legal to hand to
// provide_value for a node input (everything except Invalid and Target).
func (v BuildValue) IsScalar() bool {
	switch v.Kind {
	case ValueKindVirtualInput, ValueKindExistingInput, ValueKindMissingInput,
		ValueKindFailedInput, ValueKindSuccessfulCommand, ValueKindFailedCommand,
		ValueKindSkippedCommand:
		return true
	default:
		return false
	}
}

const fileInfoEncodedLen = 8 + 8 + 4 + 8 + 8 + 1

func encodeFileInfo(fi FileInfo) []byte {
	buf := make([]byte, fileInfoEncodedLen)
	binary.LittleEndian.PutUint64(buf[0:8], fi.Device)
	binary.LittleEndian.PutUint64(buf[8:16], fi.Inode)
	binary.LittleEndian.PutUint32(buf[16:20], fi.Mode)
	binary.LittleEndian.PutUint64(buf[20:28], uint64(fi.Size))
	binary.LittleEndian.PutUint64(buf[28:36], uint64(fi.ModTime))
	if fi.Missing {
		buf[36] = 1
	}
	return buf
}

func decodeFileInfo(b []byte) (FileInfo, error) {
	if len(b) < fileInfoEncodedLen {
		return FileInfo{}, ErrTruncatedBytes
	}
	return FileInfo{
		Device:  binary.LittleEndian.Uint64(b[0:8]),
		Inode:   binary.LittleEndian.Uint64(b[8:16]),
		Mode:    binary.LittleEndian.Uint32(b[16:20]),
		Size:    int64(binary.LittleEndian.Uint64(b[20:28])),
		ModTime: int64(binary.LittleEndian.Uint64(b[28:36])),
		Missing: b[36] != 0,
	}, nil
}

// Encode serializes the value as tag:u8 ‖ body, matching the wire shapes
// enumerated in the codec design: nothing, one FileInfo, a length-prefixed
// vector of FileInfo, or (signature, vector).
func (v BuildValue) Encode() []byte {
	switch v.Kind {
	case ValueKindExistingInput:
		return append([]byte{byte(v.Kind)}, encodeFileInfo(v.FileInfo)...)
	case ValueKindSuccessfulCommand:
		out := []byte{byte(v.Kind)}
		var sig [8]byte
		binary.LittleEndian.PutUint64(sig[:], v.Signature)
		out = append(out, sig[:]...)
		var count [4]byte
		binary.LittleEndian.PutUint32(count[:], uint32(len(v.Outputs)))
		out = append(out, count[:]...)
		for _, fi := range v.Outputs {
			out = append(out, encodeFileInfo(fi)...)
		}
		return out
	default:
		return []byte{byte(v.Kind)}
	}
}

// DecodeValue decodes the byte form produced by Encode.
func DecodeValue(b []byte) (BuildValue, error) {
	if len(b) < 1 {
		return BuildValue{}, ErrTruncatedBytes
	}
	kind := ValueKind(b[0])
	body := b[1:]
	switch kind {
	case ValueKindInvalid, ValueKindVirtualInput, ValueKindMissingInput,
		ValueKindFailedInput, ValueKindFailedCommand, ValueKindSkippedCommand,
		ValueKindTarget:
		return BuildValue{Kind: kind}, nil
	case ValueKindExistingInput:
		fi, err := decodeFileInfo(body)
		if err != nil {
			return BuildValue{}, err
		}
		return BuildValue{Kind: kind, FileInfo: fi}, nil
	case ValueKindSuccessfulCommand:
		if len(body) < 12 {
			return BuildValue{}, ErrTruncatedBytes
		}
		sig := binary.LittleEndian.Uint64(body[0:8])
		count := binary.LittleEndian.Uint32(body[8:12])
		rest := body[12:]
		outputs := make([]FileInfo, 0, count)
		for i := uint32(0); i < count; i++ {
			if len(rest) < fileInfoEncodedLen {
				return BuildValue{}, ErrTruncatedBytes
			}
			fi, err := decodeFileInfo(rest[:fileInfoEncodedLen])
			if err != nil {
				return BuildValue{}, err
			}
			outputs = append(outputs, fi)
			rest = rest[fileInfoEncodedLen:]
		}
		return BuildValue{Kind: kind, Signature: sig, Outputs: outputs}, nil
	default:
		return BuildValue{}, ErrUnknownValueTag
	}
}
