package elfsec

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/bitkit/getbc/internal/toolexec"
)

// objdump -h -w prints one section per line:
//
//	Idx Name          Size      VMA               LMA               File off  Algn
//	 24 .llvm_bc      00000023  0000000000000000  0000000000000000  00000fb0  2**0
//
// Name is column 2, Size column 3 (hex), File off column 6 (hex). This is a
// text contract with an external tool; lines that do not fit the shape are
// skipped rather than rejected.
const objdumpColumns = 7

// ObjdumpLocator finds sections by parsing the section-header table printed
// by an external object-dump tool.
type ObjdumpLocator struct {
	Tool   string
	Runner toolexec.Runner
}

func (l ObjdumpLocator) Locate(section, path string) (Descriptor, error) {
	args := []string{"-h", "-w", path}
	out, code, err := l.Runner.Output("", l.Tool, args...)
	if err != nil {
		return Descriptor{}, err
	}
	if code != 0 {
		return Descriptor{}, toolexec.NewToolError(code, nil, l.Tool, args...)
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < objdumpColumns {
			continue
		}
		if fields[1] != section {
			continue
		}
		size, err := strconv.ParseUint(fields[2], 16, 64)
		if err != nil {
			continue
		}
		offset, err := strconv.ParseUint(fields[5], 16, 64)
		if err != nil {
			continue
		}
		return Descriptor{Size: size, Offset: offset}, nil
	}
	return Descriptor{}, fmt.Errorf("%w: %s in %s", ErrSectionNotFound, section, path)
}
