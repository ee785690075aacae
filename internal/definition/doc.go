// Package definition loads structure definitions authored in CUE and
// compiles them into schema.StructureSchema values.
//
// A definition names the id member and the indexed members of a structure:
//
//	structure: Customer: {
//		id: "Id"
//		index: {
//			Name:              {type: "string", unique: "perType"}
//			"Address.Zip":     {type: "integer"}
//			"Orders.OrderNo":  {type: "string", unique: "perInstance"}
//		}
//	}
//
// Index types are the type class names (string, enum, integer, fractal,
// datetime, bool, guid, other). Unique modes are none, perType and
// perInstance. The id member defaults to "Id".
package definition
