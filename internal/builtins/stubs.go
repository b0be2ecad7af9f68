package builtins

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterStubModules wires the Node-style module namespaces spec.md §1
// places out of scope for bit-exact behavior but SPEC_FULL.md §5.6 still
// requires as minimal, signature-correct surfaces backed by the host Go
// standard library (fs, path, crypto, stream, util, url, os, assert,
// string_decoder) — so a script that imports them does not hard-fail, even
// though this engine makes no attempt to replicate Node's platform
// semantics bit-for-bit.
func RegisterStubModules(r *Registry) {
	registerFS(r)
	registerPath(r)
	registerCrypto(r)
	registerStream(r)
	registerUtil(r)
	registerURL(r)
	registerOS(r)
	registerAssert(r)
	registerStringDecoder(r)
}

func registerFS(r *Registry) {
	r.Register("fs", "readFileSync", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("TypeError: fs.readFileSync requires a path argument")
		}
		data, err := os.ReadFile(stringArg(args))
		if err != nil {
			return nil, fmt.Errorf("Error: %w", err)
		}
		return runtime.String(string(data)), nil
	}, "Reads a file synchronously and returns its contents as a string")

	r.Register("fs", "writeFileSync", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("TypeError: fs.writeFileSync requires path and data arguments")
		}
		path := runtime.ToStringValue(args[0])
		data := runtime.ToStringValue(args[1])
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			return nil, fmt.Errorf("Error: %w", err)
		}
		return runtime.Undefined, nil
	}, "Writes data to a file synchronously")

	r.Register("fs", "existsSync", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		_, err := os.Stat(stringArg(args))
		return runtime.BoolValue(err == nil), nil
	}, "Reports whether a path exists")
}

func registerPath(r *Registry) {
	r.Register("path", "join", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = runtime.ToStringValue(a)
		}
		return runtime.String(filepath.ToSlash(filepath.Join(parts...))), nil
	}, "Joins path segments")

	r.Register("path", "basename", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(filepath.Base(stringArg(args))), nil
	}, "Returns the last portion of a path")

	r.Register("path", "dirname", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(filepath.ToSlash(filepath.Dir(stringArg(args)))), nil
	}, "Returns the directory portion of a path")

	r.Register("path", "extname", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(filepath.Ext(stringArg(args))), nil
	}, "Returns the extension of a path")
}

func registerCrypto(r *Registry) {
	r.Register("crypto", "randomUUID", func(_ any, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return runtime.String(uuid.NewString()), nil
	}, "Generates a random RFC 4122 v4 UUID")

	r.Register("crypto", "createHash", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		algo := stringArg(args)
		if algo != "sha256" && algo != "" {
			return nil, fmt.Errorf("Error: unsupported digest algorithm %q", algo)
		}
		hashObj := runtime.NewObject()
		sum := sha256.New()
		hashObj.Set("update", &runtime.NativeFunction{Name: "update", Fn: func(_ any, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			sum.Write([]byte(stringArg(args)))
			return this, nil
		}})
		hashObj.Set("digest", &runtime.NativeFunction{Name: "digest", Fn: func(_ any, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
			return runtime.String(hex.EncodeToString(sum.Sum(nil))), nil
		}})
		return hashObj, nil
	}, "Returns a minimal sha256 Hash object with update/digest")
}

func registerStream(r *Registry) {
	r.Register("stream", "Readable", func(_ any, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return runtime.NewObject(), nil
	}, "Stub Readable stream constructor")
	r.Register("stream", "Writable", func(_ any, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return runtime.NewObject(), nil
	}, "Stub Writable stream constructor")
}

func registerUtil(r *Registry) {
	r.Register("util", "format", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = inspect(a)
		}
		return runtime.String(strings.Join(parts, " ")), nil
	}, "Formats arguments like console.log, returning the string instead of printing it")

	r.Register("util", "inspect", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.String("undefined"), nil
		}
		return runtime.String(inspect(args[0])), nil
	}, "Returns a string representation of a value for debugging")
}

func registerURL(r *Registry) {
	r.Register("url", "__call__", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("TypeError: URL requires a string argument")
		}
		raw := stringArg(args)
		obj := runtime.NewObject()
		obj.Set("href", runtime.String(raw))
		if idx := strings.Index(raw, "://"); idx >= 0 {
			obj.Set("protocol", runtime.String(raw[:idx]+":"))
			rest := raw[idx+3:]
			if slash := strings.IndexByte(rest, '/'); slash >= 0 {
				obj.Set("host", runtime.String(rest[:slash]))
				obj.Set("pathname", runtime.String(rest[slash:]))
			} else {
				obj.Set("host", runtime.String(rest))
				obj.Set("pathname", runtime.String("/"))
			}
		}
		return obj, nil
	}, "Parses a minimal subset of the URL fields (href/protocol/host/pathname)")
}

func registerOS(r *Registry) {
	r.Register("os", "platform", func(_ any, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return runtime.String(hostPlatform()), nil
	}, "Returns the host operating system identifier")

	r.Register("os", "tmpdir", func(_ any, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return runtime.String(os.TempDir()), nil
	}, "Returns the default directory for temporary files")
}

func hostPlatform() string {
	switch goruntime.GOOS {
	case "darwin":
		return "darwin"
	case "windows":
		return "win32"
	default:
		return "linux"
	}
}

func registerAssert(r *Registry) {
	r.Register("assert", "__call__", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 || !runtime.Truthy(args[0]) {
			msg := "AssertionError"
			if len(args) > 1 {
				msg = runtime.ToStringValue(args[1])
			}
			return nil, fmt.Errorf("%s", msg)
		}
		return runtime.Undefined, nil
	}, "Throws if the condition is falsy")

	r.Register("assert", "strictEqual", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("AssertionError: strictEqual requires two arguments")
		}
		if !runtime.StrictEquals(args[0], args[1]) {
			return nil, fmt.Errorf("AssertionError: %s !== %s", runtime.ToStringValue(args[0]), runtime.ToStringValue(args[1]))
		}
		return runtime.Undefined, nil
	}, "Throws unless both arguments are ===")
}

func registerStringDecoder(r *Registry) {
	r.Register("string_decoder", "StringDecoder", func(_ any, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		obj := runtime.NewObject()
		obj.Set("write", &runtime.NativeFunction{Name: "write", Fn: func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.String(stringArg(args)), nil
		}})
		obj.Set("end", &runtime.NativeFunction{Name: "end", Fn: func(_ any, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
			return runtime.String(""), nil
		}})
		return obj, nil
	}, "Minimal UTF-8 passthrough StringDecoder")
}
