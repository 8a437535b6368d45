package bucketfs

import (
	"context"

	"github.com/harrison/bfswalk/internal/walker"
	"github.com/stretchr/testify/mock"
)

// Mock is a testify mock of API.
type Mock struct {
	mock.Mock
}

var _ API = (*Mock)(nil)

// NewMock creates an empty Mock.
func NewMock() *Mock {
	return &Mock{}
}

// SimulateFiles makes ListFiles return files.
func (m *Mock) SimulateFiles(files []walker.File) {
	m.On("ListFiles", mock.Anything).Return(files, nil)
}

// SimulateFilesError makes ListFiles fail with err.
func (m *Mock) SimulateFilesError(err error) {
	m.On("ListFiles", mock.Anything).Return(nil, err)
}

// SimulateAbsolutePath makes FindAbsolutePath resolve fileName to absolutePath.
func (m *Mock) SimulateAbsolutePath(fileName, absolutePath string) {
	m.On("FindAbsolutePath", mock.Anything, fileName).Return(absolutePath, nil)
}

// SimulateAbsolutePathError makes FindAbsolutePath fail for fileName.
func (m *Mock) SimulateAbsolutePathError(fileName string, err error) {
	m.On("FindAbsolutePath", mock.Anything, fileName).Return("", err)
}

// SimulateClose makes Close return err.
func (m *Mock) SimulateClose(err error) {
	m.On("Close").Return(err)
}

func (m *Mock) ListFiles(ctx context.Context) ([]walker.File, error) {
	args := m.Called(ctx)
	if files, ok := args.Get(0).([]walker.File); ok {
		return files, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Mock) FindAbsolutePath(ctx context.Context, fileName string) (string, error) {
	args := m.Called(ctx, fileName)
	return args.String(0), args.Error(1)
}

func (m *Mock) Close() error {
	return m.Called().Error(0)
}
