package checker

// LibFileName is the name the built-in library is bound under.
const LibFileName = "/__dtsresolve__/lib.d.ts"

// libSource declares the global types declaration files commonly lean on.
// It is a script file, so everything in it is global.
const libSource = `interface Object {
    toString(): string;
    valueOf(): Object;
}
interface Function {
    readonly length: number;
    readonly name: string;
}
interface CallableFunction extends Function {}
interface NewableFunction extends Function {}
interface IArguments {
    readonly length: number;
    [index: number]: any;
}
interface String {
    readonly length: number;
    charAt(pos: number): string;
    indexOf(searchString: string, position?: number): number;
    slice(start?: number, end?: number): string;
    [index: number]: string;
}
interface Number {
    toFixed(fractionDigits?: number): string;
    toString(radix?: number): string;
}
interface Boolean {
    valueOf(): boolean;
}
interface Symbol {
    readonly description: string | undefined;
}
interface BigInt {
    toString(radix?: number): string;
}
interface RegExp {
    readonly source: string;
    test(string: string): boolean;
}
interface Date {
    getTime(): number;
    toISOString(): string;
}
interface Error {
    name: string;
    message: string;
    stack?: string;
}
interface Array<T> {
    length: number;
    [n: number]: T;
}
interface ReadonlyArray<T> {
    readonly length: number;
    readonly [n: number]: T;
}
interface TemplateStringsArray extends ReadonlyArray<string> {
    readonly raw: readonly string[];
}
interface PromiseLike<T> {
    then<TResult1 = T, TResult2 = never>(onfulfilled?: ((value: T) => TResult1 | PromiseLike<TResult1>) | undefined | null, onrejected?: ((reason: any) => TResult2 | PromiseLike<TResult2>) | undefined | null): PromiseLike<TResult1 | TResult2>;
}
interface Promise<T> {
    then<TResult1 = T, TResult2 = never>(onfulfilled?: ((value: T) => TResult1 | PromiseLike<TResult1>) | undefined | null, onrejected?: ((reason: any) => TResult2 | PromiseLike<TResult2>) | undefined | null): Promise<TResult1 | TResult2>;
    catch<TResult = never>(onrejected?: ((reason: any) => TResult | PromiseLike<TResult>) | undefined | null): Promise<T | TResult>;
}
interface Map<K, V> {
    readonly size: number;
    get(key: K): V | undefined;
    set(key: K, value: V): this;
    has(key: K): boolean;
    delete(key: K): boolean;
}
interface ReadonlyMap<K, V> {
    readonly size: number;
    get(key: K): V | undefined;
    has(key: K): boolean;
}
interface Set<T> {
    readonly size: number;
    add(value: T): this;
    has(value: T): boolean;
    delete(value: T): boolean;
}
interface ReadonlySet<T> {
    readonly size: number;
    has(value: T): boolean;
}
interface WeakMap<K extends object, V> {
    get(key: K): V | undefined;
    set(key: K, value: V): this;
}
interface ArrayBuffer {
    readonly byteLength: number;
}
interface Uint8Array {
    readonly length: number;
    [index: number]: number;
}
type PropertyKey = string | number | symbol;
type Partial<T> = {
    [P in keyof T]?: T[P];
};
type Required<T> = {
    [P in keyof T]-?: T[P];
};
type Readonly<T> = {
    readonly [P in keyof T]: T[P];
};
type Pick<T, K extends keyof T> = {
    [P in K]: T[P];
};
type Record<K extends keyof any, T> = {
    [P in K]: T;
};
type Exclude<T, U> = T extends U ? never : T;
type Extract<T, U> = T extends U ? T : never;
type Omit<T, K extends keyof any> = Pick<T, Exclude<keyof T, K>>;
type NonNullable<T> = T & {};
type Parameters<T extends (...args: any) => any> = T extends (...args: infer P) => any ? P : never;
type ReturnType<T extends (...args: any) => any> = T extends (...args: any) => infer R ? R : any;
type InstanceType<T extends abstract new (...args: any) => any> = T extends abstract new (...args: any) => infer R ? R : any;
type Awaited<T> = T extends null | undefined ? T : T extends object & { then(onfulfilled: infer F, ...args: infer _): any; } ? F extends (value: infer V, ...args: infer _) => any ? Awaited<V> : never : T;
type Uppercase<S extends string> = intrinsic;
type Lowercase<S extends string> = intrinsic;
type Capitalize<S extends string> = intrinsic;
type Uncapitalize<S extends string> = intrinsic;
`
