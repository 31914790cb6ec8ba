package scope

// builtins is the set of names the host's builtins mapping provides,
// consulted only after a reference fails to resolve against every enclosing
// frame and the caller's bindings stack. It is deliberately a static,
// representative subset (not an exhaustive enumeration of every builtin the
// target runtime ships) — callers that need a different set can inject the
// missing names through the bindings stack instead, since the builtins set
// itself is not configurable per call.
var builtins = map[string]struct{}{
	"abs": {}, "all": {}, "any": {}, "bin": {}, "bool": {}, "bytearray": {},
	"bytes": {}, "callable": {}, "chr": {}, "classmethod": {}, "compile": {},
	"complex": {}, "delattr": {}, "dict": {}, "dir": {}, "divmod": {},
	"enumerate": {}, "eval": {}, "exec": {}, "filter": {}, "float": {},
	"format": {}, "frozenset": {}, "getattr": {}, "globals": {}, "hasattr": {},
	"hash": {}, "help": {}, "hex": {}, "id": {}, "input": {}, "int": {},
	"isinstance": {}, "issubclass": {}, "iter": {}, "len": {}, "list": {},
	"locals": {}, "map": {}, "max": {}, "memoryview": {}, "min": {}, "next": {},
	"object": {}, "oct": {}, "open": {}, "ord": {}, "pow": {}, "print": {},
	"property": {}, "range": {}, "repr": {}, "reversed": {}, "round": {},
	"set": {}, "setattr": {}, "slice": {}, "sorted": {}, "staticmethod": {},
	"str": {}, "sum": {}, "super": {}, "tuple": {}, "type": {}, "vars": {},
	"zip": {},
	"True": {}, "False": {}, "None": {}, "NotImplemented": {}, "Ellipsis": {},
	"Exception": {}, "BaseException": {}, "ValueError": {}, "TypeError": {},
	"KeyError": {}, "IndexError": {}, "AttributeError": {}, "StopIteration": {},
	"ImportError": {}, "NameError": {}, "RuntimeError": {}, "NotImplementedError": {},
	"__name__": {}, "__file__": {}, "__doc__": {},
}
