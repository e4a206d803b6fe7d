// Package annotate collects mappings from spans of generated text back to
// the schema elements they were generated from.
package annotate

import (
	"fmt"
	"slices"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Collector receives one annotation per annotated span. A nil Collector
// means annotation is disabled.
type Collector interface {
	Add(path []int32, sourceFile string, begin, end int)
}

// Proto collects annotations into a GeneratedCodeInfo message.
type Proto struct {
	info *descriptorpb.GeneratedCodeInfo
}

// New returns an empty collector.
func New() *Proto {
	return &Proto{info: &descriptorpb.GeneratedCodeInfo{}}
}

// Add records that generated bytes [begin, end) come from the schema element
// at path in sourceFile.
func (p *Proto) Add(path []int32, sourceFile string, begin, end int) {
	p.info.Annotation = append(p.info.Annotation, &descriptorpb.GeneratedCodeInfo_Annotation{
		Path:       slices.Clone(path),
		SourceFile: proto.String(sourceFile),
		Begin:      proto.Int32(int32(begin)),
		End:        proto.Int32(int32(end)),
	})
}

// Info returns the collected annotations.
func (p *Proto) Info() *descriptorpb.GeneratedCodeInfo { return p.info }

// Marshal serializes the annotations deterministically.
func (p *Proto) Marshal() ([]byte, error) {
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(p.info)
	if err != nil {
		return nil, fmt.Errorf("marshal generated code info: %w", err)
	}
	return b, nil
}

// Schema element paths, as field numbers of FileDescriptorProto.
const (
	FilePackageField    = 2
	FileDependencyField = 3
)

// PackagePath is the path of the file's package statement.
func PackagePath() []int32 { return []int32{FilePackageField} }

// DependencyPath is the path of the i-th import.
func DependencyPath(i int) []int32 { return []int32{FileDependencyField, int32(i)} }

// FilePath is the path of the file itself.
func FilePath() []int32 { return []int32{} }
