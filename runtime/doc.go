// Package runtime provides the high-level API for embedding scripts.
//
// # Quick Start
//
//	rt, err := runtime.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	result, err := rt.EvalValue(`[1, 2, 3].map(function (n) { return n * 2 })`)
//	fmt.Println(result) // Array[Number(2), Number(4), Number(6)]
//
// # Host Functions
//
// Register Go functions individually or as a namespace:
//
//	rt.RegisterFunc("", "square", func(inv *engine.Invocation[engine.NoData]) (value.Value, error) {
//	    n := inv.Arg(0).Float()
//	    return value.Number(n * n), nil
//	})
//
//	// Or implement the Host interface; exported methods with the
//	// engine.Func signature become mathx.add, mathx.parseInt, ...
//	rt.RegisterHost(&MathHost{})
//
// Registrations take effect on the next Eval, EvalValue or RunFile.
// Native objects are registered on the underlying engine:
//
//	engine.RegisterObject(rt.Engine(), "Counter", counter)
//
// # Configuration
//
// A TOML file selects the log level, container depth limit, installed
// builtins and preloaded globals:
//
//	fc, err := runtime.LoadConfig("duk.toml")
//	cfg, err := fc.Config(nil)
//	rt, err := runtime.New(cfg)
//
// # Thread Safety
//
// A Runtime owns one heap and must only be used from one goroutine at a time.
// The HostRegistry itself may be filled from any goroutine.
package runtime
