package rayverb

import (
	"encoding/json"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// WriteJson serialises data to a JSON file through the TileDB VFS, so the
// output location can be local or an object store such as s3.
func WriteJson(file_uri string, config_uri string, data any) (int, error) {
	config, err := loadConfig(config_uri)
	if err != nil {
		return 0, err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return 0, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return 0, err
	}
	defer vfs.Free()

	// the vfs api auto checks for a file's existence and removes it if we are wanting to write
	stream, err := vfs.Open(file_uri, tiledb.TILEDB_VFS_WRITE)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return 0, err
	}

	bytes_written, err := stream.Write(jsn)
	if err != nil {
		return 0, err
	}

	return bytes_written, nil
}

// JsonDumps constructs a JSON string of the supplied data.
func JsonDumps(data any) (string, error) {
	jsn, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return string(jsn), nil
}

// loadConfig returns a generic tiledb config when no path is provided,
// otherwise the config loaded from the given uri.
func loadConfig(config_uri string) (*tiledb.Config, error) {
	if config_uri == "" {
		return tiledb.NewConfig()
	}

	return tiledb.LoadConfig(config_uri)
}
