package fileio

//go:generate clang -O2 -g -target bpf -D__TARGET_ARCH_x86 -c ../../../bpf/file_io.c -o ../../../bpf/file_io.o
