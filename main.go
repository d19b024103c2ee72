package main

import (
	"os"

	"pathtrace/cmd"

	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "go-pathtrace"
	app.Usage = "render scenes using Monte Carlo path tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	sceneFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "device worker pool size (0 uses GOMAXPROCS)",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "render",
			Usage:     "render a scene to a PNG file",
			ArgsUsage: "scene.txt",
			Flags: append(sceneFlags,
				cli.IntFlag{
					Name:  "spp",
					Value: 16,
					Usage: "samples per pixel (iterations)",
				},
				cli.IntFlag{
					Name:  "depth",
					Value: 8,
					Usage: "maximum path depth",
				},
				cli.IntFlag{
					Name:  "rr-bounces",
					Value: 4,
					Usage: "bounce count after which Russian roulette may terminate a path (0 disables)",
				},
				cli.BoolFlag{
					Name:  "cache-first-bounce",
					Usage: "reuse the primary-ray intersection across iterations (static camera/scene only)",
				},
				cli.BoolFlag{
					Name:  "sort-by-material",
					Usage: "sort live paths by hit material before shading",
				},
				cli.Float64Flag{
					Name:  "exposure",
					Value: 1.0,
					Usage: "exposure applied before tonemapping",
				},
				cli.BoolFlag{
					Name:  "denoise",
					Usage: "apply the À-Trous denoiser before writing the frame",
				},
				cli.Float64Flag{
					Name:  "sigma-color",
					Value: 0.4,
					Usage: "denoiser color edge-stopping sigma",
				},
				cli.Float64Flag{
					Name:  "sigma-normal",
					Value: 0.1,
					Usage: "denoiser normal edge-stopping sigma",
				},
				cli.Float64Flag{
					Name:  "sigma-position",
					Value: 0.3,
					Usage: "denoiser position edge-stopping sigma",
				},
				cli.IntFlag{
					Name:  "filter-size",
					Value: 16,
					Usage: "denoiser maximum filter footprint",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			),
			Action: cmd.RenderFrame,
		},
		{
			Name:      "info",
			Usage:     "load a scene and report device/worker-pool info",
			ArgsUsage: "scene.txt",
			Flags:     sceneFlags,
			Action:    cmd.Info,
		},
		{
			Name:      "compile",
			Usage:     "parse a scene file and write it back out via scene/writer",
			ArgsUsage: "scene.txt",
			Flags: append(sceneFlags,
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output scene filename",
				},
			),
			Action: cmd.CompileScene,
		},
	}

	app.Run(os.Args)
}
