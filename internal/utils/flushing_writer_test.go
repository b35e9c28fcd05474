package utils_test

import (
	"bufio"
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/tagaudit/internal/utils"
)

func TestFlushingWriterFlushesBufferedDestination(testInstance *testing.T) {
	var destination bytes.Buffer
	bufferedWriter := bufio.NewWriterSize(&destination, 4096)
	writer := utils.NewFlushingWriter(bufferedWriter)

	bytesWritten, writeError := writer.Write([]byte("Severity,Category,Issue,Item Name"))

	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 33, bytesWritten)
	require.Equal(testInstance, "Severity,Category,Issue,Item Name", destination.String())
	require.Same(testInstance, writer, utils.NewFlushingWriter(writer))
}

func TestFlushingWriterSerializesConcurrentWrites(testInstance *testing.T) {
	var destination bytes.Buffer
	writer := utils.NewFlushingWriter(&destination)

	var waitGroup sync.WaitGroup
	for writerIndex := 0; writerIndex < 8; writerIndex++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_, writeError := writer.Write([]byte("line\n"))
			require.NoError(testInstance, writeError)
		}()
	}
	waitGroup.Wait()

	require.Equal(testInstance, strings.Repeat("line\n", 8), destination.String())
}

func TestFlushingWriterDiscardsWithoutDestination(testInstance *testing.T) {
	bytesWritten, writeError := utils.NewFlushingWriter(nil).Write([]byte("ignored"))

	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 7, bytesWritten)
}
