/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package fileops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "apis", "orders-api", "operations", "get-order"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "apis", "orders-api", "apiInformation.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "apis", "orders-api", "operations", "get-order", "apiOperationInformation.json"), []byte(`{}`), 0o644))
}

func TestLiveFS_ReadFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)
	fs := NewLiveFS(root)

	body, err := fs.ReadFile(context.Background(), "apis/orders-api/apiInformation.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
}

func TestLiveFS_ReadFile_NotExist(t *testing.T) {
	fs := NewLiveFS(t.TempDir())
	_, err := fs.ReadFile(context.Background(), "missing.json")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLiveFS_SubDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)
	fs := NewLiveFS(root)

	dirs, err := fs.SubDirectories(context.Background(), "apis")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders-api"}, dirs)
}

func TestLiveFS_EnumerateFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)
	fs := NewLiveFS(root)

	files, err := fs.EnumerateFiles(context.Background(), "apis")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"apis/orders-api/apiInformation.json",
		"apis/orders-api/operations/get-order/apiOperationInformation.json",
	}, files)
}

func TestLiveFS_Exists(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)
	fs := NewLiveFS(root)

	ok, err := fs.Exists(context.Background(), "apis/orders-api")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fs.Exists(context.Background(), "apis/missing-api")
	require.NoError(t, err)
	assert.False(t, ok)
}
