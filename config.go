package main

import (
	"os"

	"gopkg.in/yaml.v2"
)

type Render struct {
	ViewRadius int `yaml:"view_radius"`
	Workers    int `yaml:"upload_workers"`
	QueueDepth int `yaml:"upload_queue_depth"`
}

type Status struct {
	ServerIP   string `yaml:"server_ip"`
	ServerPort int    `yaml:"server_port"`
	Enable     bool   `yaml:"enable"`
}

type Config struct {
	WorldDir string `yaml:"world_dir"`
	Render   Render `yaml:"render"`
	Status   Status `yaml:"status"`
	GUI      bool   `yaml:"gui"`
}

func LoadConfig() *Config {
	config := &Config{}

	file, err := os.Open("wgpu-mc.yml")
	if err != nil {
		file.Close()
		config = &Config{
			WorldDir: "world",
			Render: Render{
				ViewRadius: 8,
				Workers:    4,
				QueueDepth: 64,
			},
			Status: Status{
				ServerIP:   "127.0.0.1",
				ServerPort: 9090,
				Enable:     true,
			},
			GUI: false,
		}
		file, _ := os.Create("wgpu-mc.yml")
		e := yaml.NewEncoder(file)
		e.Encode(&config)
		return config
	}
	defer file.Close()

	d := yaml.NewDecoder(file)

	if err := d.Decode(&config); err != nil {
		return nil
	}

	return config
}
