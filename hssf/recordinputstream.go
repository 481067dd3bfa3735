// Developer: Ali Naqvi
//
// This program or package and any associated files are licensed under the
// Apache License, Version 2.0 (the "License"); you may not use these files
// except in compliance with the License. You can get a copy of the License
// at: http://www.apache.org/licenses/LICENSE-2.0.
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hssf

import (
	"errors"
	"io"

	"github.com/naqvis/poi4go/util"
	"go.uber.org/zap"
)

// RecordInputStream splits a byte stream into physical records. It
// alternates between reading a 4 byte header and reading the payload the
// header announced; continuations are not merged at this level.
type RecordInputStream struct {
	r          io.Reader
	log        *zap.Logger
	headerRead bool
	done       bool
	sid        uint16
	length     int
	offset     int64
}

func NewRecordInputStream(r io.Reader, log *zap.Logger) *RecordInputStream {
	if log == nil {
		log = zap.L()
	}
	return &RecordInputStream{r: r, log: log}
}

// HasNextRecord reads the next header if it was not read yet. A stream
// ending inside a header is treated as the end of the records.
func (s *RecordInputStream) HasNextRecord() (bool, error) {
	if s.headerRead {
		return true, nil
	}
	if s.done {
		return false, nil
	}
	var hdr [RECORD_HEADER_SIZE]byte
	n, err := io.ReadFull(s.r, hdr[:])
	switch {
	case err == io.EOF:
		s.done = true
		return false, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.log.Warn("ignoring trailing bytes after the last record",
			zap.Int("bytes", n), zap.Int64("offset", s.offset))
		s.done = true
		return false, nil
	case err != nil:
		return false, err
	}
	s.sid = uint16(util.GetUShort(hdr[:], 0))
	s.length = util.GetUShort(hdr[:], 2)
	s.headerRead = true
	if s.length > MAX_RECORD_DATA_SIZE {
		s.log.Warn("record is longer than the BIFF8 maximum",
			zap.Uint16("sid", s.sid), zap.Int("length", s.length))
	}
	return true, nil
}

// NextSid is the sid of the header read by the last successful
// HasNextRecord.
func (s *RecordInputStream) NextSid() uint16 {
	return s.sid
}

// NextRecord returns the next physical record, io.EOF after the last one.
func (s *RecordInputStream) NextRecord() (uint16, []byte, error) {
	ok, err := s.HasNextRecord()
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, io.EOF
	}
	payload := make([]byte, s.length)
	n, err := io.ReadFull(s.r, payload)
	if err != nil {
		s.done = true
		s.headerRead = false
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, nil, util.FormatErrorf("record 0x%04X at offset %d declares %d bytes, only %d remain",
				s.sid, s.offset, s.length, n)
		}
		return 0, nil, err
	}
	s.headerRead = false
	s.offset += int64(RECORD_HEADER_SIZE + s.length)
	return s.sid, payload, nil
}
