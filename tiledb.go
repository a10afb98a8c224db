package rayverb

import (
	"errors"
	"reflect"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

// ArrayOpen is a helper func for opening a tiledb array.
func ArrayOpen(ctx *tiledb.Context, uri string, mode tiledb.QueryType) (*tiledb.Array, error) {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return nil, err
	}

	err = array.Open(mode)
	if err != nil {
		array.Free()
		return nil, err
	}

	return array, nil
}

// ArrayOpenWrite opens a tiledb array in write mode.
func ArrayOpenWrite(ctx *tiledb.Context, uri string) (*tiledb.Array, error) {
	return ArrayOpen(ctx, uri, tiledb.TILEDB_WRITE)
}

// AddFilters sequentially appends compression filters to the filter
// pipeline list.
func AddFilters(filter_list *tiledb.FilterList, filter ...*tiledb.Filter) error {
	for _, filt := range filter {
		err := filter_list.AddFilter(filt)
		if err != nil {
			return errors.Join(ErrAddFilters, err)
		}
	}

	return nil
}

// ZstdFilter initialises the Zstandard compression filter and sets the
// compression level.
func ZstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}

	err = filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level)
	if err != nil {
		filt.Free()
		return nil, err
	}

	return filt, nil
}

// AttachFilters acts as a helper for when setting the same pipeline
// filter list to a bunch of attributes.
func AttachFilters(filter_list *tiledb.FilterList, attrs ...*tiledb.Attribute) error {
	for _, attr := range attrs {
		err := attr.SetFilterList(filter_list)
		if err != nil {
			return err
		}
	}

	return nil
}

// CreateAttr creates a tiledb attribute along with the compression filter
// pipeline. The configuration is specified by the tags attached to the
// struct field.
// Tags for tiledb include: dtype, ftype. Where dtype is datatype and
// ftype is fieldtype (dim or attr); dim fields are skipped as they're
// handled when constructing the array domain.
// Supported datatype values are int64, uint64, float32, float64, string.
// Tags for filters include: zstd(level=16) and bysh (byteshuffle).
// Filters will be set in the order they're specified in the tag.
// An example tag is `tiledb:"dtype=float32,ftype=attr" filters:"zstd(level=16)"`.
func CreateAttr(
	field_name string,
	filter_defs []stgpsr.Definition,
	tiledb_defs map[string]stgpsr.Definition,
	schema *tiledb.ArraySchema,
	ctx *tiledb.Context,
) error {

	var tdb_dtype tiledb.Datatype

	def, status := tiledb_defs["dtype"]
	if !status {
		return errors.Join(ErrCreateAttributeTdb, errors.New("dtype tag not found"))
	}
	dtype, _ := def.Attribute("dtype")

	switch dtype {
	case "int64":
		tdb_dtype = tiledb.TILEDB_INT64
	case "uint64":
		tdb_dtype = tiledb.TILEDB_UINT64
	case "float32":
		tdb_dtype = tiledb.TILEDB_FLOAT32
	case "float64":
		tdb_dtype = tiledb.TILEDB_FLOAT64
	case "string":
		tdb_dtype = tiledb.TILEDB_STRING_UTF8
	default:
		return errors.Join(ErrCreateAttributeTdb, errors.New("unsupported dtype tag"))
	}

	attr_filts, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return errors.Join(ErrCreateAttributeTdb, err)
	}
	defer attr_filts.Free()

	// filter pipeline
	for _, filter := range filter_defs {
		switch filter.Name() {
		case "zstd":
			level, status := filter.Attribute("level")
			if !status {
				return errors.Join(ErrCreateAttributeTdb, errors.New("zstd level not defined"))
			}
			filt, err := ZstdFilter(ctx, int32(level.(int64)))
			if err != nil {
				return errors.Join(ErrCreateAttributeTdb, err)
			}
			defer filt.Free()
			err = attr_filts.AddFilter(filt)
			if err != nil {
				return errors.Join(ErrCreateAttributeTdb, err)
			}
		case "bysh":
			filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_BYTESHUFFLE)
			if err != nil {
				return errors.Join(ErrCreateAttributeTdb, err)
			}
			defer filt.Free()
			err = attr_filts.AddFilter(filt)
			if err != nil {
				return errors.Join(ErrCreateAttributeTdb, err)
			}
		}
	}

	attr, err := tiledb.NewAttribute(ctx, field_name, tdb_dtype)
	if err != nil {
		return errors.Join(ErrCreateAttributeTdb, err)
	}
	defer attr.Free()

	err = AttachFilters(attr_filts, attr)
	if err != nil {
		return errors.Join(ErrCreateAttributeTdb, err)
	}

	err = schema.AddAttributes(attr)
	if err != nil {
		return errors.Join(ErrCreateAttributeTdb, err)
	}

	return nil
}

// schemaAttrs establishes tiledb attributes for every exported field of
// the given struct, driven by the tiledb and filters struct tags. Fields
// tagged ftype=dim are ignored; dimensions are built when constructing
// the array domain.
func schemaAttrs(t any, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	var (
		field_tdb_defs map[string]stgpsr.Definition
		def            stgpsr.Definition
		status         bool
	)
	values := reflect.ValueOf(t).Elem()
	types := values.Type()
	filt_defs, _ := stgpsr.ParseStruct(t, "filters")
	tdb_defs, _ := stgpsr.ParseStruct(t, "tiledb")

	// process every field in the struct
	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name

		field_filt_defs := filt_defs[name]

		// a mapping just seemed easier to pull required defs
		// rather than a simple listing
		field_tdb_defs = make(map[string]stgpsr.Definition)
		for _, v := range tdb_defs[name] {
			field_tdb_defs[v.Name()] = v
		}

		def, status = field_tdb_defs["ftype"]
		if !status {
			return errors.Join(ErrCreateSchemaTdb, errors.New("ftype tag not found"))
		}
		ftype, _ := def.Attribute("ftype")
		if ftype == "dim" {
			continue
		}

		err := CreateAttr(name, field_filt_defs, field_tdb_defs, schema, ctx)
		if err != nil {
			return errors.Join(ErrCreateSchemaTdb, err)
		}
	}

	return nil
}
