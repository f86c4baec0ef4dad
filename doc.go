// Package obfuscator produces obfuscated copies of rigged characters.
//
// A character is a hierarchy of named nodes whose components reference
// assets: meshes, materials, textures, audio clips, behavior graphs, masks,
// expression menus and parameter lists. Those assets reference each other
// and the hierarchy by name. The obfuscator clones the character and every
// asset it reaches into a fresh run folder, replaces identifying names with
// opaque tokens, and rewrites every cross-reference so the copy behaves
// exactly like the original.
//
// # Getting Started
//
// Open an asset store and obfuscate a subject:
//
//	store, err := fsstore.Open("Assets")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	o, err := obfuscator.New(store, obfuscator.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := o.ObfuscateScene(ctx, sc, "Avatar", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Root.Name) // 3f2a...e1_Obfuscated
//
// # Configuration
//
// Each feature (hierarchy names, parameters, meshes and shape keys,
// materials and textures, audio) can be switched off with config.Config.
// Parameters are renamed only if selected; ListParameters returns the names
// a subject offers for selection. A nil configuration uses the one stored in
// the subject's marker component, or config.Default().
//
// # Stores
//
// Any asset.Store works. Three are provided:
//
//   - store/memstore: in memory, for tests and embedding
//   - store/fsstore: a directory of compressed documents with a read cache
//   - store/redisstore: a shared asset library in Redis
//
// # Errors
//
// Fatal conditions abort the run and are returned as *obferr.Error values,
// matched with errors.Is against the Err* sentinels of this package.
// Recoverable conditions are collected in Result.Diagnostics and logged.
//
// # Cleanup
//
// ClearAll deletes every run folder, ClearScene deletes the folders of the
// obfuscated roots present in a scene, and RemoveObfuscatedRoots drops those
// roots from the scene.
package obfuscator
