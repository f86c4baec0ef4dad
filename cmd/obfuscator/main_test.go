package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilkit/obfuscator"
	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/scene"
	"github.com/veilkit/obfuscator/store/fsstore"
)

const testScene = `roots:
  - name: Avatar
    descriptor:
      base_layers:
        - type: fx
          controller: Assets/FX.controller
    animator:
      avatar: Assets/Avatar.asset
      controller: Assets/FX.controller
    children:
      - name: Armature
        children:
          - name: Hips
  - name: Broken
    animator:
      avatar: Assets/Avatar.asset
`

// workspace seeds an asset directory and a scene file.
func workspace(t *testing.T) (storeDir, scenePath string) {
	t.Helper()
	dir := t.TempDir()
	storeDir = filepath.Join(dir, "store")

	fs, err := fsstore.Open(storeDir)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, fs.Put(ctx, asset.Info{Ref: "Assets/Avatar.asset", Path: "Assets/Avatar.asset"}, &asset.Avatar{Name: "Avatar", Valid: true}))
	require.NoError(t, fs.Put(ctx, asset.Info{Ref: "Assets/FX.controller", Path: "Assets/FX.controller"}, &asset.Controller{
		Name: "FX",
		Parameters: []asset.Parameter{
			{Name: "Wave", Type: asset.ParameterBool},
			{Name: "Dance", Type: asset.ParameterBool},
			{Name: "IsLocal", Type: asset.ParameterBool},
		},
	}))
	require.NoError(t, fs.Persist(ctx))
	fs.Close()

	scenePath = filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(scenePath, []byte(testScene), 0o644))
	return storeDir, scenePath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "obfuscator "+version+"\n", out)
}

func TestCheckCmd(t *testing.T) {
	storeDir, scenePath := workspace(t)

	out, err := execute(t, "--store", storeDir, "check", scenePath, "Avatar")
	require.NoError(t, err)
	assert.Contains(t, out, "subject  healthy")
	assert.Contains(t, out, "assets   healthy   all 2 referenced asset(s) found")
	assert.Contains(t, out, "output   healthy   output container 'Obfuscated' will be created")
	assert.True(t, strings.HasSuffix(out, "Avatar: ok\n"))

	_, err = execute(t, "--store", storeDir, "check", scenePath, "Broken")
	assert.ErrorIs(t, err, obfuscator.ErrMissingComponent)

	_, err = execute(t, "--store", storeDir, "check", scenePath, "Nobody")
	assert.ErrorIs(t, err, obfuscator.ErrSubjectNotFound)

	lost := strings.Replace(testScene, "avatar: Assets/Avatar.asset\n      controller", "avatar: Assets/Gone.asset\n      controller", 1)
	lostPath := filepath.Join(t.TempDir(), "lost.yaml")
	require.NoError(t, os.WriteFile(lostPath, []byte(lost), 0o644))

	out, err = execute(t, "--store", storeDir, "check", lostPath, "Avatar")
	require.Error(t, err)
	assert.Contains(t, out, "assets   unhealthy 1 referenced asset(s) missing")
	assert.Contains(t, out, "  missing Assets/Gone.asset\n")
}

func TestParamsCmd(t *testing.T) {
	storeDir, scenePath := workspace(t)

	out, err := execute(t, "--store", storeDir, "params", scenePath, "Avatar")
	require.NoError(t, err)
	assert.Equal(t, "  Dance\n  Wave\n", out, "reserved names are not offered")

	out, err = execute(t, "--store", storeDir, "params", "--all", "--write", scenePath, "Avatar")
	require.NoError(t, err)
	assert.Equal(t, "* Dance\n* Wave\n", out)

	sc, err := scene.Load(scenePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dance", "Wave"}, sc.Root("Avatar").Marker.Config.ExposedParameters.SelectedParameterNames)
}

func TestRunAndClearCmd(t *testing.T) {
	storeDir, scenePath := workspace(t)

	out, err := execute(t, "--store", storeDir, "run", "--progress", scenePath, "Avatar")
	require.NoError(t, err)
	assert.Contains(t, out, "[  0%] duplicate")
	assert.Contains(t, out, "[100%] finalize")
	assert.Contains(t, out, "obfuscated Avatar as ")

	sc, err := scene.Load(scenePath)
	require.NoError(t, err)
	require.Len(t, sc.Roots, 3)
	copyRoot := sc.Roots[2]
	assert.True(t, obfuscator.IsObfuscatedName(copyRoot.Name))
	assert.True(t, sc.Root("Avatar").Disabled)

	// The run was persisted: a fresh store sees the rebuilt avatar.
	fs, err := fsstore.Open(storeDir)
	require.NoError(t, err)
	_, err = fs.Stat(context.Background(), copyRoot.Animator.Avatar)
	require.NoError(t, err)
	fs.Close()

	out, err = execute(t, "--store", storeDir, "clear", scenePath)
	require.NoError(t, err)
	assert.Equal(t, "deleted 1 run folder(s)\nremoved 1 obfuscated root(s)\n", out)

	sc, err = scene.Load(scenePath)
	require.NoError(t, err)
	assert.Len(t, sc.Roots, 2)

	out, err = execute(t, "--store", storeDir, "clear", "--all")
	require.NoError(t, err)
	assert.Equal(t, "deleted Obfuscated\n", out)

	_, err = execute(t, "--store", storeDir, "clear")
	assert.Error(t, err)
}
